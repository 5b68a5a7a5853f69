package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserIDFilter(t *testing.T) {
	hex := "65f1c2a9b3e4d5f6a7b8c9d0"
	objectID, _ := primitive.ObjectIDFromHex(hex)

	assert.Equal(t, bson.M{"_id": objectID}, userIDFilter(hex))
	assert.Equal(t, bson.M{"_id": "doc-1"}, userIDFilter("doc-1"))
}
