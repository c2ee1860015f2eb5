// Package tui holds the interactive prompts and styled reports of the
// dnsctl CLI.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"nathanbeddoewebdev/dnsctl/internal/platform/providers"
	"nathanbeddoewebdev/dnsctl/internal/tui/styles"
)

// ErrLoginAborted is returned when the user cancels the credential form.
var ErrLoginAborted = errors.New("login aborted by user")

// PromptCredentials asks for every credential of spec in one form. The
// result is keyed by keychain key.
func PromptCredentials(spec providers.CredentialSpec) (map[string]string, error) {
	values := make([]string, len(spec.Keys))
	fields := make([]huh.Field, 0, len(spec.Keys))
	for i, k := range spec.Keys {
		input := huh.NewInput().
			Title(fmt.Sprintf("%s %s", spec.DisplayName, k.Prompt)).
			Value(&values[i]).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("%s cannot be empty", k.Prompt)
				}
				return nil
			})
		if k.Secret {
			input = input.EchoMode(huh.EchoModePassword)
		}
		fields = append(fields, input)
	}

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(styles.FormTheme()).
		WithAccessible(os.Getenv("ACCESSIBLE") != "")
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrLoginAborted
		}
		return nil, err
	}

	out := make(map[string]string, len(spec.Keys))
	for i, k := range spec.Keys {
		out[spec.KeychainKey(k)] = strings.TrimSpace(values[i])
	}
	return out, nil
}
