package main

import (
	"errors"
	"os"

	"github.com/sagarc03/docrepo/clientcli"
	"github.com/spf13/cobra"
)

var (
	uploadContentType string
	uploadDirect      bool
)

var errUploadFailed = errors.New("one or more uploads failed")

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>...",
	Short: "Upload documents to the repository",
	Long: `Upload documents to the repository.

Each file is stored under a new key built from the upload time and its
file name. Only allowed file types are accepted by the gateway.

By default files are sent as multipart/form-data. Use --direct to send the
raw bytes with the file name in the query string.

Examples:
  docrepo-cli upload ./report.pdf
  docrepo-cli upload ./a.pdf ./b.docx
  docrepo-cli upload --direct --content-type text/plain ./notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
	uploadCmd.Flags().BoolVar(&uploadDirect, "direct", false, "send raw bytes instead of a multipart form")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		Paths:       args,
		ContentType: uploadContentType,
		Direct:      uploadDirect,
	}

	results, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		return err
	}

	formatter := getFormatter()
	if err := formatter.FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return errUploadFailed
	}

	return nil
}
