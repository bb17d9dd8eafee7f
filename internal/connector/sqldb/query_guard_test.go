package sqldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSingleSelectAcceptsSelect(t *testing.T) {
	assert.NoError(t, ValidateSingleSelect("SELECT id, name FROM customers WHERE active = 1"))
}

func TestValidateSingleSelectRejectsStackedStatements(t *testing.T) {
	err := ValidateSingleSelect("SELECT 1; DROP TABLE customers;")
	assert.Error(t, err)
}

func TestValidateSingleSelectRejectsMutatingStatement(t *testing.T) {
	err := ValidateSingleSelect("DELETE FROM customers")
	assert.Error(t, err)
}

func TestValidateSingleSelectRejectsEmpty(t *testing.T) {
	assert.Error(t, ValidateSingleSelect("   "))
}

func TestValidateSingleSelectRejectsMalformedSQL(t *testing.T) {
	assert.Error(t, ValidateSingleSelect("SELECT FROM WHERE"))
}
