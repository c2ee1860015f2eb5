package auditlog

import "strings"

const redacted = "<redacted>"

// secretSuffixes mark flags whose values are credentials, for example
// --token, --api-key and --secret-key.
var secretSuffixes = []string{"token", "key", "secret", "password"}

func isSecretFlag(arg string) bool {
	if !strings.HasPrefix(arg, "--") {
		return false
	}
	name := strings.ToLower(strings.TrimPrefix(arg, "--"))
	for _, suffix := range secretSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// SanitizeArgs returns args with credential flag values replaced, so the
// audit log never stores secrets. Arguments after "--" are kept as is.
func SanitizeArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)

	for i := 0; i < len(out); i++ {
		arg := out[i]
		if arg == "--" {
			break
		}
		if name, _, ok := strings.Cut(arg, "="); ok {
			if isSecretFlag(name) {
				out[i] = name + "=" + redacted
			}
			continue
		}
		if isSecretFlag(arg) && i+1 < len(out) {
			out[i+1] = redacted
			i++
		}
	}

	if n := len(out); n > 0 && isSecretFlag(out[n-1]) && !strings.Contains(out[n-1], "=") {
		out = append(out, redacted)
	}
	return out
}
