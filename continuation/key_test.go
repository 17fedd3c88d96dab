/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package continuation

import (
	"math/rand"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/recordstore/errors"
)

func TestDecode(t *testing.T) {
	t.Run("empty string", func(t *testing.T) {
		key, err := Decode("")
		require.NoError(t, err)
		assert.NotNil(t, key)
		assert.True(t, key.Empty())
	})

	t.Run("person key", func(t *testing.T) {
		key, err := Decode("firstName:Person5,lastName:lastNameTest")
		require.NoError(t, err)
		assert.Equal(t, Key{"firstName": "Person5", "lastName": "lastNameTest"}, key)
	})

	t.Run("value keeps later colons", func(t *testing.T) {
		key, err := Decode("Isbn:978:0")
		require.NoError(t, err)
		assert.Equal(t, Key{"Isbn": "978:0"}, key)
	})

	t.Run("empty value", func(t *testing.T) {
		key, err := Decode("firstName:")
		require.NoError(t, err)
		assert.Equal(t, Key{"firstName": ""}, key)
	})

	malformed := []string{
		"firstName",
		"firstName:Person5,lastName",
		":Person5",
		"firstName:a,firstName:b",
		",",
	}
	for _, in := range malformed {
		t.Run("malformed "+in, func(t *testing.T) {
			key, err := Decode(in)
			assert.Nil(t, key)
			assert.True(t, errors.IsMalformedContinuationKey(err), "got %v", err)
		})
	}
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
	assert.Equal(t, "", Encode(Key{}))
	assert.Equal(t, "firstName:Person5,lastName:lastNameTest",
		Encode(Key{"lastName": "lastNameTest", "firstName": "Person5"}))
	assert.Equal(t, "cpf:1%2C2%3A3%254", Encode(Key{"cpf": "1,2:3%4"}))
}

func TestRoundTrip(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_#. "
	rng := rand.New(rand.NewSource(42))
	randomString := func(min int) string {
		n := min + rng.Intn(12)
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(b)
	}

	for i := 0; i < 500; i++ {
		key := Key{}
		for n := 1 + rng.Intn(4); len(key) < n; {
			key[randomString(1)] = randomString(0)
		}

		decoded, err := Decode(Encode(key))
		require.NoError(t, err)
		require.Equal(t, key, decoded)
	}
}

func TestRoundTripWithDelimiters(t *testing.T) {
	keys := []Key{
		{"firstName": "Smith, John", "lastName": "a:b"},
		{"Isbn": "%2C"},
		{"we,ird:": "%%,,::"},
	}
	for _, key := range keys {
		decoded, err := Decode(Encode(key))
		require.NoError(t, err)
		assert.Equal(t, key, decoded)
	}
}

func TestAttributeValues(t *testing.T) {
	t.Run("empty key yields nil", func(t *testing.T) {
		assert.Nil(t, Key{}.AttributeValues())
	})

	t.Run("round trip", func(t *testing.T) {
		key := Key{"firstName": "Person5", "lastName": "lastNameTest"}
		av := key.AttributeValues()
		assert.Equal(t, &types.AttributeValueMemberS{Value: "Person5"}, av["firstName"])

		back, err := FromAttributeValues(av)
		require.NoError(t, err)
		assert.Equal(t, key, back)
	})

	t.Run("nil map", func(t *testing.T) {
		key, err := FromAttributeValues(nil)
		require.NoError(t, err)
		assert.NotNil(t, key)
		assert.True(t, key.Empty())
	})

	t.Run("non-string attribute", func(t *testing.T) {
		_, err := FromAttributeValues(map[string]types.AttributeValue{
			"count": &types.AttributeValueMemberN{Value: "1"},
		})
		assert.True(t, errors.IsMalformedContinuationKey(err))
	})
}
