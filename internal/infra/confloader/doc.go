// Package confloader loads configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Overrides (command-line flags)
//  2. Environment variables (WIREHTTP_SECTION_KEY)
//  3. The YAML configuration file
//  4. Values already present in the target struct (defaults)
//
// Watcher reports writes to the configuration file so callers can reload.
package confloader
