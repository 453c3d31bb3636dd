// Package config provides application configuration loading and validation.
//
// Configuration is read from a YAML file and validated with
// go-playground/validator struct tags. Planner tuning constants default to
// the values the production web planner shipped with, so an empty planner
// block behaves identically to the original deployment.
package config
