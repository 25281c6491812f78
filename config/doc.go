// Package config provides configuration loading and validation for the
// signing service.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (S3COMPONENT_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx = config.WithContext(ctx, cfg)
//
// # Destinations
//
// A destination is a named settings map, signed with exactly as if the host
// had passed it along with the event:
//
//	destinations:
//	  main:
//	    aws_access_key: AKIA...
//	    aws_secret_key: ...
//	    aws_region: eu-west-1
//	    s3_bucket: analytics
//	    s3_key_prefix: events/
//
// Destination names are lower-cased by the loader. Load rejects a
// destination missing any required setting.
//
// # Environment Variables
//
// Config keys map to environment variables with the S3COMPONENT_ prefix:
//   - server.port → S3COMPONENT_SERVER_PORT
//   - auth.region → S3COMPONENT_AUTH_REGION
//   - log.level → S3COMPONENT_LOG_LEVEL
package config
