package main

import (
	"fmt"
	"strings"

	"launcher/internal/apps"
	"launcher/internal/config"
)

func displayName(name string) string {
	return apps.DisplayName(name)
}

// resolveAppNames maps user-typed names ("osu-trainer", "Open Tablet Driver")
// onto catalog names.
func resolveAppNames(cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	catalog := apps.FromConfig(cfg)
	names := make([]string, 0, len(args))
	for _, arg := range args {
		app, ok := catalog.Lookup(arg)
		if !ok {
			known := make([]string, 0, 5)
			for _, a := range catalog.All() {
				known = append(known, a.Name())
			}
			return nil, fmt.Errorf("unknown app %q (known: %s)", arg, strings.Join(known, ", "))
		}
		names = append(names, app.Name())
	}
	return names, nil
}
