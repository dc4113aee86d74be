package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCertificate(t *testing.T) {
	t.Run("extracts all fields from a well-formed certificate", func(t *testing.T) {
		text := "CERTIFICATE OF DEATH\nNAME: JOHN DOE\nDATE OF DEATH: 01/15/2024\nCERTIFICATE NO: DC-2024-001234"
		data := ParseCertificate(text)

		assert.Equal(t, "John Doe", data.FullName)
		assert.Equal(t, "01/15/2024", data.DateOfDeath)
		assert.Equal(t, "DC-2024-001234", data.CertificateID)
		assert.InDelta(t, 1.0, data.ConfidenceScore, 1e-9)
	})

	t.Run("strips titles from the decedent name", func(t *testing.T) {
		data := ParseCertificate("DIED: 03/02/2023\nDECEDENT: DR. JANE SMITH")
		assert.Equal(t, "Jane Smith", data.FullName)
		assert.Equal(t, "03/02/2023", data.DateOfDeath)
	})

	t.Run("confidence is additive per extracted field", func(t *testing.T) {
		nameOnly := ParseCertificate("NAME: ALICE JOHNSON")
		assert.InDelta(t, 0.5, nameOnly.ConfidenceScore, 1e-9)

		nameAndDate := ParseCertificate("NAME: ALICE JOHNSON\nDATE OF DEATH: 05/01/2022")
		assert.InDelta(t, 0.8, nameAndDate.ConfidenceScore, 1e-9)
	})

	t.Run("rejects names shorter than the minimum length", func(t *testing.T) {
		data := ParseCertificate("NAME: AB")
		assert.Empty(t, data.FullName)
		assert.Zero(t, data.ConfidenceScore)
	})

	t.Run("rejects certificate ids shorter than five characters", func(t *testing.T) {
		data := ParseCertificate("CERT NO: A1")
		assert.Empty(t, data.CertificateID)
	})

	t.Run("returns zero confidence for unparseable text", func(t *testing.T) {
		data := ParseCertificate("completely unrelated text")
		assert.Empty(t, data.FullName)
		assert.Empty(t, data.DateOfDeath)
		assert.Empty(t, data.CertificateID)
		assert.Zero(t, data.ConfidenceScore)
	})
}

func TestValidateCertificate(t *testing.T) {
	t.Run("valid data passes", func(t *testing.T) {
		result := ValidateCertificate(CertificateData{
			FullName:        "John Doe",
			DateOfDeath:     "01/15/2024",
			CertificateID:   "DC-2024-001234",
			ConfidenceScore: 1.0,
		}, 0.5)
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
		assert.Empty(t, result.Warnings)
	})

	t.Run("missing name and date are errors", func(t *testing.T) {
		result := ValidateCertificate(CertificateData{}, 0.5)
		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("low confidence is a warning not an error", func(t *testing.T) {
		result := ValidateCertificate(CertificateData{
			FullName:        "John Doe",
			DateOfDeath:     "01/15/2024",
			ConfidenceScore: 0.3,
		}, 0.5)
		assert.True(t, result.IsValid)
		assert.Len(t, result.Warnings, 1)
	})

	t.Run("unparseable date is an error", func(t *testing.T) {
		result := ValidateCertificate(CertificateData{
			FullName:        "John Doe",
			DateOfDeath:     "15th of January",
			ConfidenceScore: 0.8,
		}, 0.5)
		assert.False(t, result.IsValid)
	})
}

func TestValidateDeathDate(t *testing.T) {
	t.Run("accepts supported layouts", func(t *testing.T) {
		for _, s := range []string{
			"01/15/2024", "01-15-2024", "01/15/24", "01-15-24",
			"2024-01-15", "2024/01/15",
		} {
			result := ValidateDeathDate(s)
			assert.True(t, result.IsValid, "expected %q to parse", s)
		}
	})

	t.Run("rejects future dates", func(t *testing.T) {
		result := ValidateDeathDate("12/25/2099")
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "future")
	})

	t.Run("rejects dates more than 150 years old", func(t *testing.T) {
		result := ValidateDeathDate("01/01/1800")
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Error, "past")
	})

	t.Run("rejects empty and malformed input", func(t *testing.T) {
		assert.False(t, ValidateDeathDate("").IsValid)
		assert.False(t, ValidateDeathDate("not a date").IsValid)
	})
}
