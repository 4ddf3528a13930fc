package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSort(t *testing.T) {
	tests := []struct {
		raw  string
		want bson.D
	}{
		{"", bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{"name", bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
		{"-ratingsAverage,name", bson.D{{Key: "ratingsAverage", Value: -1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
		{"-id", bson.D{{Key: "_id", Value: -1}}},
		{" , ", bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Sort(tt.raw))
		})
	}
}

func TestProjection(t *testing.T) {
	assert.Nil(t, Projection(""))
	assert.Equal(t, bson.M{"password": 0}, Projection("", "password"))
	assert.Equal(t, bson.M{"name": 1, "email": 1}, Projection("name,email,password", "password"))
	assert.Equal(t, bson.M{"email": 0, "password": 0}, Projection("-email", "password"))
	assert.Equal(t, bson.M{"name": 1, "_id": 0}, Projection("name,-_id"))
}

func TestKeywordFilter(t *testing.T) {
	assert.Nil(t, KeywordFilter("foo", nil))
	assert.Nil(t, KeywordFilter("  ", []string{"name"}))

	got := KeywordFilter("Foo", []string{"companyName", "description"})
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"companyName": primitive.Regex{Pattern: "Foo", Options: "i"}},
		bson.M{"description": primitive.Regex{Pattern: "Foo", Options: "i"}},
	}}, got)
}
