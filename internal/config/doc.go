// Package config loads mahasiswa settings.
//
// The loading sequence is:
//  1. Start from Default()
//  2. Overlay the YAML file, if one is given
//  3. Apply MAHASISWA_* environment variable overrides
//  4. Validate the result
//
// Environment variables always take precedence over the file.
package config
