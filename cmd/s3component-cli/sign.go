package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	"github.com/edgee-cloud/amazon-s3-component/clientcli"
	"github.com/edgee-cloud/amazon-s3-component/filesystem"
	"github.com/spf13/cobra"
)

var (
	signDestination string
	signStrict      bool
	signOutDir      string
)

var signCmd = &cobra.Command{
	Use:   "sign <page|track|user> <event.json|->",
	Short: "Sign an event as an S3 PUT request",
	Long: `Sign an event and print the resulting request descriptor.

The descriptor holds the method, URL, headers and body of the PUT; executing
it is left to the caller. Use "-" to read the event from stdin.

Examples:
  s3component-cli sign track event.json --bucket events --region eu-west-1
  cat event.json | s3component-cli sign page - --profile analytics --json
  s3component-cli sign user event.json --endpoint http://localhost:5718 --destination warehouse
  s3component-cli sign track event.json --profile analytics --out-dir ./spool`,
	Args: cobra.ExactArgs(2),
	RunE: runSign,
}

func init() {
	signCmd.Flags().StringVarP(&signDestination, "destination", "d", "", "named destination on the signing service (requires --endpoint)")
	signCmd.Flags().BoolVar(&signStrict, "strict", false, "fail instead of sending an empty body when the event cannot be encoded")
	signCmd.Flags().StringVarP(&signOutDir, "out-dir", "o", "", "also write the descriptor into this spool directory")
}

func runSign(cmd *cobra.Command, args []string) error {
	kind, err := s3component.ParseEventKind(args[0])
	if err != nil {
		return err
	}

	event, err := clientcli.ReadEvent(args[1], cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd.Context())
	if err != nil {
		return err
	}

	result, err := sign(cmd, cfg, kind, event)
	if err != nil {
		return err
	}

	if signOutDir != "" {
		if result.SpoolPath, err = spool(cmd.Context(), signOutDir, result.Request); err != nil {
			return err
		}
	}

	return getFormatter().FormatSign(cmd.OutOrStdout(), result)
}

func sign(cmd *cobra.Command, cfg *clientcli.Config, kind s3component.EventKind, event s3component.Event) (*clientcli.SignResult, error) {
	if cfg.Endpoint == "" {
		if signDestination != "" {
			return nil, errors.New("--destination requires --endpoint")
		}
		return signLocally(cmd.ErrOrStderr(), cfg, kind, event)
	}

	client, err := clientcli.New(cfg)
	if err != nil {
		return nil, err
	}

	var req s3component.Request
	if signDestination != "" {
		req, err = client.SignDestination(cmd.Context(), signDestination, kind, event)
	} else {
		req, err = client.Sign(cmd.Context(), kind, event)
	}
	if err != nil {
		return nil, err
	}

	return &clientcli.SignResult{Kind: kind, Request: req, Remote: true}, nil
}

func signLocally(stderr io.Writer, cfg *clientcli.Config, kind s3component.EventKind, event s3component.Event) (*clientcli.SignResult, error) {
	opts := []s3component.Option{s3component.WithLogger(newLogger(stderr))}
	if signStrict {
		opts = append(opts, s3component.WithStrictSerialization())
	}

	req, err := s3component.NewComponent(opts...).Collect(kind, event, cfg.Dict())
	if err != nil {
		return nil, fmt.Errorf("sign %s event: %w", kind, err)
	}

	return &clientcli.SignResult{Kind: kind, Request: req}, nil
}


// spool writes req under dir and returns the written file path.
func spool(ctx context.Context, dir string, req s3component.Request) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create spool directory: %w", err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return "", fmt.Errorf("open spool directory: %w", err)
	}
	defer func() { _ = root.Close() }()

	result, err := filesystem.NewFileStorage(root).Write(ctx, req)
	if err != nil {
		return "", fmt.Errorf("spool request: %w", err)
	}
	return filepath.Join(dir, result.Path), nil
}
