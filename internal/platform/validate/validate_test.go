// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toileapp/toile/internal/platform/apperr"
)

func TestIsPersonName(t *testing.T) {
	valid := []string{
		"Alice DUPONT",
		"José MARTINEZ",
		"Éloïse LELIÈVRE",
		"Jean-pierre DURAND-LEROY",
	}
	for _, name := range valid {
		assert.True(t, IsPersonName(name), "expected %q to be valid", name)
	}

	invalid := []string{
		"",
		"Alice",
		"alice DUPONT",
		"Alice Dupont",
		"ALICE DUPONT",
		"Alice DUPONT JUNIOR extra",
		" Alice DUPONT",
	}
	for _, name := range invalid {
		assert.False(t, IsPersonName(name), "expected %q to be invalid", name)
	}
}

func TestIsGraphID(t *testing.T) {
	assert.True(t, IsGraphID("123456"))
	assert.True(t, IsGraphID("000001"))

	invalid := []string{"", "12345", "1234567", "12a456", "12 456", "-12345"}
	for _, id := range invalid {
		assert.False(t, IsGraphID(id), "expected %q to be invalid", id)
	}
}

func TestIsRelationType(t *testing.T) {
	assert.True(t, IsRelationType("FAMILLE"))
	assert.True(t, IsRelationType("TYPE_2"))
	assert.True(t, IsRelationType("A"))

	invalid := []string{"", "amis", "1TYPE", "TY PE", "TYPE-X", "X]->() DELETE"}
	for _, relType := range invalid {
		assert.False(t, IsRelationType(relType), "expected %q to be invalid", relType)
	}
}

func TestValidatorCollectsAllFailures(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("name", "").
		Email("email", "nope").
		GraphID("nodeId", "12").
		Err()

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Len(t, appErr.Details, 3)
}

func TestValidatorPasses(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("name", "Alice DUPONT").
		PersonName("name", "Alice DUPONT").
		Email("email", "alice@example.com").
		GraphID("nodeId", "123456").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}
