package settings

import (
	"net/http"

	"stocksence/frontend/shared/respond"
	"stocksence/store"
)

func SettingsQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, st.Settings())
	}
}

// SettingsUpdateHandler applies every field of the patch or none of them.
func SettingsUpdateHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch store.SettingsPatch
		if err := respond.Decode(r, &patch); err != nil {
			respond.Error(w, r, err)
			return
		}
		s, err := st.UpdateSettings(r.Context(), patch)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, s)
	}
}

func CurrenciesQueryHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, st.Currencies())
	}
}
