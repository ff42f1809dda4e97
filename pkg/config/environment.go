package config

import "strings"

// Environment is a recognized target environment name.
type Environment string

const (
	// EnvPie1 targets the pie environment.
	EnvPie1 Environment = "pie1"
	// EnvStage1 targets the staging environment and is the fallback
	// for unrecognized names.
	EnvStage1 Environment = "stage1"

	// DefaultEnvironment is used when no --env flag is given.
	DefaultEnvironment = EnvPie1
	// FallbackEnvironment is used for names that are not recognized.
	FallbackEnvironment = EnvStage1
)

var environmentKeys = map[Environment]string{
	EnvPie1:   KeyBaseURLPie,
	EnvStage1: KeyBaseURLStage,
}

// Environments returns the recognized environments.
func Environments() []Environment {
	return []Environment{EnvPie1, EnvStage1}
}

// LookupEnvironment matches name case-insensitively against the recognized
// environments. Unknown names return FallbackEnvironment and false.
func LookupEnvironment(name string) (Environment, bool) {
	env := Environment(strings.ToLower(name))
	if _, ok := environmentKeys[env]; ok {
		return env, true
	}
	return FallbackEnvironment, false
}

// BaseURLKey returns the config file key holding the environment's base URL.
func (e Environment) BaseURLKey() string {
	if key, ok := environmentKeys[e]; ok {
		return key
	}
	return environmentKeys[FallbackEnvironment]
}
