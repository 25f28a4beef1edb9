package blob

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInlineRoundTrip(t *testing.T) {
	store := NewInline()
	data := []byte{0xff, 0xd8, 0xff, 0x01, 0x02}

	ref, err := store.Put(context.Background(), "ignored", data, "image/jpeg")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "data:image/jpeg;base64,"))

	got, err := store.Get(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestInlineGetRejectsForeignRef(t *testing.T) {
	store := NewInline()

	_, err := store.Get(context.Background(), "s3://bucket/key")
	require.Error(t, err)
}

func TestParseS3Ref(t *testing.T) {
	bucket, key, err := parseS3Ref("s3://avatars/users/abc.jpg")
	require.NoError(t, err)
	require.Equal(t, "avatars", bucket)
	require.Equal(t, "users/abc.jpg", key)

	_, _, err = parseS3Ref("data:image/jpeg;base64,xxx")
	require.Error(t, err)

	_, _, err = parseS3Ref("s3://bucketonly")
	require.Error(t, err)
}
