// Package config defines configuration structures for the stacfetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (STACFETCH_ prefix)
//   - YAML configuration file, by default $XDG_CONFIG_HOME/stacfetch/config.yaml
//
// # File Format
//
//	output_dir: data
//	plan_file: plan.json
//	plan_bucket: s3://plans?region=eu-central-1
//	buffer_size: 4MiB
//	catalog:
//	  timeout: 30s
//	retry:
//	  attempts: 5
//	  backoff: 1s
//	  max_backoff: 30s
//	copernicus:
//	  profile: copernicus
//	element84:
//	  bucket_url: file:///srv/mirror/{bucket}
//
// Provider sections override the defaults from provider.DefaultSettings
// field by field.
package config
