// Package config loads, normalizes, and validates Newsreel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and NEWSREEL_SMTP_PASSWORD. The Config type centralizes every
// knob the CLI needs, so media server credentials, SMTP settings, and template
// options are discovered in one pass.
//
// Validation errors name the offending key but never echo secret values.
package config
