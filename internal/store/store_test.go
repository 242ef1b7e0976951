package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

func TestProfileFilter(t *testing.T) {
	t.Parallel()

	oid := primitive.NewObjectID()

	filter, err := profileFilter(oid.Hex(), "ignored")
	require.NoError(t, err)
	require.Equal(t, bson.M{"_id": oid}, filter)

	filter, err = profileFilter("legacy-id-7", "ignored")
	require.NoError(t, err)
	require.Equal(t, bson.M{"_id": "legacy-id-7"}, filter)

	filter, err = profileFilter("", "go_expert")
	require.NoError(t, err)
	require.Equal(t, bson.M{"name": "go_expert"}, filter)

	_, err = profileFilter("", "")
	require.Error(t, err)
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	payload := []byte("%PDF-1.4 resume bytes")

	binary := bson.RawValue{
		Type:  bson.TypeBinary,
		Value: bsoncore.AppendBinary(nil, 0x00, payload),
	}
	data, err := decodePayload(binary)
	require.NoError(t, err)
	require.Equal(t, payload, data)

	str := bson.RawValue{
		Type:  bson.TypeString,
		Value: bsoncore.AppendString(nil, "JVBERi0xLjQgcmVzdW1lIGJ5dGVz"),
	}
	data, err = decodePayload(str)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4 resume bytes"), data)

	notBase64 := bson.RawValue{
		Type:  bson.TypeString,
		Value: bsoncore.AppendString(nil, "!!! not base64 !!!"),
	}
	_, err = decodePayload(notBase64)
	require.Error(t, err)

	_, err = decodePayload(bson.RawValue{Type: bson.TypeInt32, Value: bsoncore.AppendInt32(nil, 1)})
	require.Error(t, err)
}

func TestAsObjectID(t *testing.T) {
	t.Parallel()

	oid := primitive.NewObjectID()
	require.Equal(t, oid, asObjectID(oid.Hex()))

	// Folder-based runs only carry profile names; those stay verbatim.
	require.Equal(t, "go_expert", asObjectID("go_expert"))
	require.Equal(t, "", asObjectID(""))
}
