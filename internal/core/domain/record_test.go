package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedRecord_IsEmpty(t *testing.T) {
	assert.True(t, NormalizedRecord{Date: "01/02/2024", Topic: "x"}.IsEmpty())
	assert.False(t, NormalizedRecord{SubjectName: "Acme"}.IsEmpty())
	assert.False(t, NormalizedRecord{CounterpartName: "Minister"}.IsEmpty())
}

func TestNormalizedRecord_Key(t *testing.T) {
	a := NormalizedRecord{
		CounterpartName: "Acme Corp",
		Date:            "01/02/2024",
		SubjectName:     "DeptX",
		SourceDocument:  "a.csv",
		Topic:           "Catch up",
	}
	b := a
	b.SourceDocument = "b.csv"
	b.Topic = "Different wording"

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, DedupeKey{Counterpart: "Acme Corp", Date: "01/02/2024", Subject: "DeptX"}, a.Key())

	c := a
	c.Date = "02/02/2024"
	assert.NotEqual(t, a.Key(), c.Key())
}
