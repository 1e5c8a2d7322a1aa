package html

import "fmt"

// JSONFormScript submits form formID as JSON with the CSRF cookie echoed in
// the X-CSRF-Token header, then navigates to next on success.
func JSONFormScript(formID, next string) string {
	return fmt.Sprintf(`<script>
(function () {
  function getCookie(name) {
    var prefix = name + "=";
    var parts = document.cookie ? document.cookie.split(";") : [];
    for (var i = 0; i < parts.length; i++) {
      var c = parts[i].trim();
      if (c.indexOf(prefix) === 0) return decodeURIComponent(c.substring(prefix.length));
    }
    return "";
  }

  var form = document.getElementById(%q);
  if (!form) return;
  form.addEventListener("submit", function (ev) {
    ev.preventDefault();
    var body = {};
    new FormData(form).forEach(function (v, k) { body[k] = v; });
    fetch(form.getAttribute("action"), {
      method: "POST",
      headers: {"Content-Type": "application/json", "X-CSRF-Token": getCookie("X-CSRF-Token")},
      body: JSON.stringify(body)
    }).then(function (res) {
      if (res.ok) { window.location = %q; return; }
      return res.json().then(function (e) { window.location = "?error=" + encodeURIComponent(e.error); });
    });
  });
})();
</script>`, formID, next)
}
