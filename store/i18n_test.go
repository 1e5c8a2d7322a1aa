package store

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksence/validation"
)

var latinLetters = regexp.MustCompile(`[A-Za-z]`)

func TestValidationMessagesAllTranslated(t *testing.T) {
	for _, m := range []string{
		validation.MsgProductNameTooShort, validation.MsgProductNameTooLong, validation.MsgCategoryTooShort,
		validation.MsgQuantityNegative, validation.MsgPriceNotPositive, validation.MsgPriceTooHigh,
		validation.MsgProductIDRequired, validation.MsgProductNameRequired, validation.MsgQuantityNotPositive,
		validation.MsgTotalNotPositive, validation.MsgTotalMismatch, validation.MsgUsernameTooShort,
		validation.MsgUsernameTooLong, validation.MsgUsernameCharset, validation.MsgPasswordTooShort,
		validation.MsgEmailInvalid, validation.MsgRoleInvalid, msgThemeInvalid,
	} {
		ar, ok := arabic[m]
		if assert.True(t, ok, m) {
			assert.False(t, latinLetters.MatchString(ar), "%q -> %q", m, ar)
		}
	}
}

func TestValidationNotificationIsFullyArabic(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	require.NoError(t, h.store.SetLanguage(h.ctx, "ar"))
	h.drain()

	_, err := h.store.AddProduct(h.ctx, validation.NewProductInput{Name: "x", Category: "y", Quantity: -1, Price: 0})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))

	ns := h.drain()
	requireOneError(t, ns, "")
	msg := ns[0].Message
	assert.False(t, latinLetters.MatchString(msg), "untranslated text in %q", msg)
	assert.Contains(t, msg, arabic[validation.MsgProductNameTooShort])
	assert.Contains(t, msg, arabic[validation.MsgPriceNotPositive])
	assert.Contains(t, msg, "؛ ")
}

func TestValidationNotificationInEnglish(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Register(h.ctx, "al", "Secret1!", "")
	require.Error(t, err)
	requireOneError(t, h.drain(), "Validation failed: "+validation.MsgUsernameTooShort)
}

func TestValidationTextKeepsUnknownMessages(t *testing.T) {
	h := newHarness(t)
	h.store.state.Language = "ar"
	got := h.store.validationText(&validation.Error{Messages: []string{"row 3: 100%", validation.MsgEmailInvalid}})
	assert.Equal(t, "row 3: 100%؛ "+arabic[validation.MsgEmailInvalid], got)
	assert.Equal(t, "plain", h.store.validationText(errors.New("plain")))
}
