// Package clientcli provides a client library for the docrepo gateway.
//
// It supports upload, list, and download against a deployed API Gateway
// stage or a local "docrepo serve". Uploads are sent as multipart/form-data
// by default, or as the raw file bytes with the file name in the query when
// Direct is set. An optional API key is sent in the X-Api-Key header for
// stages that require one.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	cfg := &clientcli.Config{
//		Endpoint: "https://abc123.execute-api.us-east-1.amazonaws.com/prod/documents",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		Paths: []string{"./report.pdf"},
//	})
//
// # Stage Profiles
//
// A Profile names one deployed stage; its Endpoint is
// InvokeURL/Stage/Resource. Profiles live in a yaml file keyed by name:
//
//	default: prod
//	profiles:
//	  prod:
//	    invoke_url: https://abc123.execute-api.us-east-1.amazonaws.com
//	    stage: prod
//	    api_key: <usage-plan key>
//
// Resolve one and build a client from it:
//
//	file, err := clientcli.LoadProfiles(clientcli.ConfigPath(""))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, profile, err := file.Lookup("prod")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := profile.Config().Override(clientcli.EnvConfig())
//	client, err := clientcli.New(&cfg)
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
