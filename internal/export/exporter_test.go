package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeongseonghan/modviz/internal/modem"
)

func testRequest(name string) Request {
	cfg := modem.DefaultConfig()
	cfg.Kind = modem.FSK
	return Request{Config: cfg, Message: modem.NewMessage([]byte("Hello")), Name: name}
}

func TestExporter_Raw(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, nil, nil)

	res, err := e.Export(context.Background(), testRequest(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultName, res.Name)
	assert.Equal(t, filepath.Join(dir, DefaultName), res.Path)
	assert.Equal(t, "raw", res.Format)
	assert.Equal(t, 40*50, res.Samples)
	assert.Equal(t, int64(4*res.Samples), res.Bytes)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.CRC32, CRC32(data))

	got, err := decodeRaw(data)
	require.NoError(t, err)
	want, err := Render(testRequest("").Config, testRequest("").Message, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExporter_ByteIdentical(t *testing.T) {
	e := NewExporter(t.TempDir(), nil, nil)

	a, err := e.Export(context.Background(), testRequest("a.32fl"))
	require.NoError(t, err)
	b, err := e.Export(context.Background(), testRequest("b.32fl"))
	require.NoError(t, err)

	da, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	db, err := os.ReadFile(b.Path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(da, db))
	assert.Equal(t, a.CRC32, b.CRC32)
}

func TestExporter_WAV(t *testing.T) {
	e := NewExporter(t.TempDir(), nil, nil)
	res, err := e.Export(context.Background(), testRequest("msg.wav"))
	require.NoError(t, err)
	assert.Equal(t, "wav", res.Format)
	assert.Greater(t, res.Bytes, int64(2*res.Samples))
}

func TestExporter_EmptyMessageWritesNothing(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, nil, nil)

	req := testRequest("")
	req.Message = modem.Message{}
	_, err := e.Export(context.Background(), req)
	require.True(t, errors.Is(err, ErrEmptyMessage))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExporter_FailedRenameLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	// A directory in the way makes the final rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultName, "keep"), []byte("x"), 0o644))

	e := NewExporter(dir, nil, nil)
	_, err := e.Export(context.Background(), testRequest(""))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultName, entries[0].Name())
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", DefaultName, true},
		{"  ", DefaultName, true},
		{"take.wav", "take.wav", true},
		{"../etc/passwd", "", false},
		{"a/b.32fl", "", false},
		{`a\b`, "", false},
		{"..", "", false},
	}
	for _, tt := range tests {
		got, err := CleanName(tt.in)
		if !tt.ok {
			assert.True(t, errors.Is(err, ErrInvalidName), tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestExporter_Upload(t *testing.T) {
	put := &fakePutter{}
	up := newS3Uploader(put, "signals", "exports/run1")
	e := NewExporter(t.TempDir(), up, nil)

	res, err := e.Export(context.Background(), testRequest("up.32fl"))
	require.NoError(t, err)
	assert.Equal(t, "s3://signals/exports/run1/up.32fl", res.Location)

	require.NotNil(t, put.in)
	assert.Equal(t, "signals", aws.ToString(put.in.Bucket))
	assert.Equal(t, "exports/run1/up.32fl", aws.ToString(put.in.Key))
	assert.Equal(t, res.Bytes, aws.ToInt64(put.in.ContentLength))
	assert.Equal(t, CRC32Base64(res.CRC32), aws.ToString(put.in.ChecksumCRC32))
	assert.Equal(t, "application/octet-stream", aws.ToString(put.in.ContentType))

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, data, put.body)
}

func TestExporter_UploadFailureKeepsLocalFile(t *testing.T) {
	put := &fakePutter{err: errors.New("bucket gone")}
	e := NewExporter(t.TempDir(), newS3Uploader(put, "b", ""), nil)

	res, err := e.Export(context.Background(), testRequest(""))
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Location)
	_, statErr := os.Stat(res.Path)
	assert.NoError(t, statErr)
}

func TestS3Config_Enabled(t *testing.T) {
	assert.False(t, S3Config{}.Enabled())
	_, err := NewS3Uploader(context.Background(), S3Config{})
	assert.Error(t, err)
	assert.True(t, S3Config{Bucket: "x"}.Enabled())
}
