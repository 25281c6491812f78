package main

import (
	"errors"
	"time"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	"github.com/edgee-cloud/amazon-s3-component/clientcli"
	"github.com/edgee-cloud/amazon-s3-component/keybackend"
	"github.com/spf13/cobra"
)

var verifyMaxSkew time.Duration

var verifyCmd = &cobra.Command{
	Use:   "verify <request.json|->",
	Short: "Check the signature of a request descriptor",
	Long: `Check the signature of a request descriptor produced by sign.

Locally the descriptor is checked against the resolved access key, secret key
and region. With --endpoint the signing service checks it against its own
key store.

Exits with status 1 when the signature is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().DurationVar(&verifyMaxSkew, "max-skew", s3component.DefaultMaxSkew, "allowed clock skew for local checks; 0 disables the check")
}

func runVerify(cmd *cobra.Command, args []string) error {
	req, err := clientcli.ReadRequest(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd.Context())
	if err != nil {
		return err
	}

	verifyErr, err := verify(cmd, cfg, req)
	if err != nil {
		return err
	}

	result := &clientcli.VerifyResult{URL: req.URL, Valid: verifyErr == nil, Err: verifyErr}
	if err := getFormatter().FormatVerify(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if verifyErr != nil {
		return errReported
	}
	return nil
}

// verify returns the signature check outcome separately from failures that
// prevented the check from running.
func verify(cmd *cobra.Command, cfg *clientcli.Config, req s3component.Request) (verifyErr, err error) {
	if cfg.Endpoint != "" {
		client, newErr := clientcli.New(cfg)
		if newErr != nil {
			return nil, newErr
		}
		verifyErr = client.Verify(cmd.Context(), req)
		if isRejection(verifyErr) {
			return verifyErr, nil
		}
		return nil, verifyErr
	}

	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Region == "" {
		return nil, errors.New("local verification needs access key, secret key and region")
	}

	verifier := s3component.NewSignatureVerifier(cfg.Region, keybackend.NewMapSecretStore(map[string]string{
		cfg.AccessKey: cfg.SecretKey,
	}))
	verifier.MaxSkew = verifyMaxSkew

	return verifier.Verify(req), nil
}

func isRejection(err error) bool {
	return errors.Is(err, clientcli.ErrForbidden) || errors.Is(err, clientcli.ErrBadRequest)
}
