// Package clientcli provides the building blocks of the s3component command
// line client: destination profiles, credential resolution and output
// formatting, plus a client for a running signing service.
//
// # Profiles
//
// A profile holds the settings of one S3 destination:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("analytics")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := clientcli.MergeConfig(clientcli.ConfigFromProfile(profile), clientcli.ConfigFromEnv())
//
// Credentials can also come from the AWS shared configuration:
//
//	awsCfg, err := clientcli.ConfigFromAWS(ctx, "prod")
//
// # Signing Service
//
// When cfg.Endpoint is set, events can be signed remotely:
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	req, err := client.Sign(ctx, s3component.KindTrack, event)
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatSign(os.Stdout, &clientcli.SignResult{Kind: kind, Request: req})
package clientcli
