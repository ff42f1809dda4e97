package config

import "fmt"

// Overrides carries command-line values that take precedence over the
// config file. Empty fields mean "not given".
type Overrides struct {
	BrowserName string
	EnvName     string

	// Params holds free-form parameters. Resolve does not read them.
	Params map[string]string
}

// Warning reports a non-fatal anomaly found while resolving settings.
type Warning struct {
	// Env is the environment name as given.
	Env string
	// Fallback is the environment that was used instead.
	Fallback Environment
}

func (w Warning) String() string {
	return fmt.Sprintf("unknown environment %q, using %s base URL", w.Env, w.Fallback)
}

// Resolution is the result of applying overrides to file settings.
type Resolution struct {
	Settings Settings
	Warnings []Warning
}

// Resolve merges file settings with overrides. It performs no I/O and never
// fails: unrecognized environment names fall back to the staging base URL
// and produce a Warning. file is not modified.
//
// Absent base URL keys in file yield a nil baseUrl; validating URLs is left
// to the browser factory.
func Resolve(file Settings, ov Overrides) Resolution {
	res := Resolution{Settings: file.Clone()}

	if ov.BrowserName != "" {
		res.Settings[KeyBrowserName] = ov.BrowserName
	}

	if ov.EnvName != "" {
		env, known := LookupEnvironment(ov.EnvName)
		if !known {
			res.Warnings = append(res.Warnings, Warning{Env: ov.EnvName, Fallback: env})
		}
		res.Settings[KeyBaseURL] = file[env.BaseURLKey()]
	}

	return res
}
