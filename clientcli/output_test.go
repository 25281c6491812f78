package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	"github.com/edgee-cloud/amazon-s3-component/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		formatter := clientcli.NewFormatter(true, false)
		_, ok := formatter.(*clientcli.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter", func(t *testing.T) {
		formatter := clientcli.NewFormatter(false, false)
		_, ok := formatter.(*clientcli.HumanFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		formatter := clientcli.NewFormatter(false, true)
		hf, ok := formatter.(*clientcli.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func signResult() *clientcli.SignResult {
	return &clientcli.SignResult{
		Kind: s3component.KindTrack,
		Request: s3component.NewRequest(
			"https://events.s3.eu-west-1.amazonaws.com/raw/2024-05-17-13-45-12-abc.json",
			s3component.Headers{
				{Name: "x-amz-date", Value: "20240517T134512Z"},
				{Name: "authorization", Value: "AWS4-HMAC-SHA256 Credential=..."},
			},
			bytes.Repeat([]byte("a"), 2048),
		),
	}
}

func TestHumanFormatter_FormatSign(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatSign(&buf, signResult()))

		output := buf.String()
		assert.Contains(t, output, "Signed track event locally")
		assert.Contains(t, output, "PUT https://events.s3.eu-west-1.amazonaws.com/raw/")
		assert.Contains(t, output, "x-amz-date: 20240517T134512Z")
		assert.Contains(t, output, "Body: 2.0 KB")
	})

	t.Run("remote and spooled", func(t *testing.T) {
		result := signResult()
		result.Remote = true
		result.SpoolPath = "spool/events.s3.eu-west-1.amazonaws.com/raw/k.json"

		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatSign(&buf, result))
		assert.Contains(t, buf.String(), "Signed track event by service")
		assert.Contains(t, buf.String(), "Spooled: spool/events.s3.eu-west-1.amazonaws.com/raw/k.json")
	})

	t.Run("quiet prints url only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatSign(&buf, signResult()))
		assert.Equal(t, "https://events.s3.eu-west-1.amazonaws.com/raw/2024-05-17-13-45-12-abc.json\n", buf.String())
	})
}

func TestJSONFormatter_FormatSign(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatSign(&buf, signResult()))

	var decoded struct {
		Kind    string              `json:"kind"`
		Request s3component.Request `json:"request"`
		Remote  bool                `json:"remote"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "track", decoded.Kind)
	assert.Equal(t, "PUT", decoded.Request.Method)
	assert.Len(t, decoded.Request.Body, 2048)
	assert.False(t, decoded.Remote)
}

func TestFormatter_FormatVerify(t *testing.T) {
	valid := &clientcli.VerifyResult{URL: "https://b.s3.r.amazonaws.com/k.json", Valid: true}
	invalid := &clientcli.VerifyResult{URL: "https://b.s3.r.amazonaws.com/k.json", Err: errors.New("signature mismatch")}

	t.Run("human valid", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatVerify(&buf, valid))
		assert.Equal(t, "Valid: https://b.s3.r.amazonaws.com/k.json\n", buf.String())
	})

	t.Run("human valid quiet", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatVerify(&buf, valid))
		assert.Empty(t, buf.String())
	})

	t.Run("human invalid quiet still prints", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatVerify(&buf, invalid))
		assert.Contains(t, buf.String(), "Invalid: https://b.s3.r.amazonaws.com/k.json - signature mismatch")
	})

	t.Run("json invalid", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatVerify(&buf, invalid))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, false, decoded["valid"])
		assert.Equal(t, "signature mismatch", decoded["error"])
	})
}

func TestFormatter_FormatError(t *testing.T) {
	t.Run("human", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatError(&buf, errors.New("boom")))
		assert.Equal(t, "Error: boom\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatError(&buf, errors.New("boom")))
		assert.JSONEq(t, `{"error":"boom"}`, buf.String())
	})
}

func testProfiles() []clientcli.Profile {
	return []clientcli.Profile{
		{Name: "dev", AccessKey: "AKIADEVELOPMENT1", SecretKey: "dev-secret-value", Region: "eu-west-1", Bucket: "dev-events"},
		{Name: "prod", AccessKey: "short", Region: "us-east-1", Bucket: "prod-events", Default: true},
	}
}

func TestHumanFormatter_FormatProfileList(t *testing.T) {
	t.Run("masked", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, testProfiles(), "prod", false))

		output := buf.String()
		assert.Contains(t, output, "NAME")
		assert.Contains(t, output, "BUCKET")
		assert.Contains(t, output, "dev-events")
		assert.Contains(t, output, "AKIA...ENT1")
		assert.Contains(t, output, "********")
		assert.Contains(t, output, "* prod")
		assert.NotContains(t, output, "AKIADEVELOPMENT1")
	})

	t.Run("show secrets", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, testProfiles(), "prod", true))
		assert.Contains(t, buf.String(), "AKIADEVELOPMENT1")
	})
}

func TestHumanFormatter_FormatProfileShow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, testProfiles()[0], true, false))

	output := buf.String()
	assert.Contains(t, output, "dev (default)")
	assert.Contains(t, output, "Bucket:        dev-events")
	assert.Contains(t, output, "Key Prefix:    (not set)")
	assert.Contains(t, output, "Secret Key:    dev-...alue")
	assert.Contains(t, output, "Session Token: (not set)")
	assert.NotContains(t, output, "Endpoint:")
}

func TestJSONFormatter_Profiles(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatProfileList(&buf, testProfiles(), "prod", false))

		var decoded struct {
			Profiles []map[string]any `json:"profiles"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded.Profiles, 2)
		assert.Equal(t, "AKIA...ENT1", decoded.Profiles[0]["access_key"])
		assert.Equal(t, false, decoded.Profiles[0]["default"])
		assert.Equal(t, true, decoded.Profiles[1]["default"])
		assert.Equal(t, "(not set)", decoded.Profiles[1]["secret_key"])
	})

	t.Run("show with secrets", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatProfileShow(&buf, testProfiles()[0], false, true))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "dev-secret-value", decoded["secret_key"])
		assert.NotContains(t, decoded, "session_token")
	})
}
