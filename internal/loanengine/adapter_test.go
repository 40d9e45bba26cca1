package loanengine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawBookFieldVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RawBook
	}{
		{
			"current revision",
			`{"id":"b1","title":"Java","author":"A","coverUrl":"/c.png","year":2020,"stock":3}`,
			RawBook{ID: "b1", Title: "Java", Author: "A", CoverURL: "/c.png", Year: 2020, Stock: 3},
		},
		{
			"legacy revision",
			`{"id":"b1","title":"Java","author":"A","cover":"/c.png","publicationYear":2020,"availableStock":3}`,
			RawBook{ID: "b1", Title: "Java", Author: "A", CoverURL: "/c.png", Year: 2020, Stock: 3},
		},
		{
			"current keys win over legacy",
			`{"title":"Java","year":2021,"publicationYear":2020,"stock":5,"availableStock":3}`,
			RawBook{Title: "Java", Year: 2021, Stock: 5},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got RawBook
			require.NoError(t, json.Unmarshal([]byte(tc.input), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRawUserFieldVariants(t *testing.T) {
	var u RawUser
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":"u1","username":"siti","email":"siti@mail.com","photoURL":"/p.png"}`), &u))
	assert.Equal(t, "siti", u.Name)
	assert.Equal(t, "/p.png", u.ProfileImageURL)
}

func TestDecodeLoanDocument(t *testing.T) {
	doc := `{
		"id": "loan-9",
		"status": "returned",
		"createdAt": {"_seconds": 1735689600},
		"approvedDate": {"_seconds": 1735776000},
		"returnDate": "2025-01-10T08:00:00Z",
		"duration": 7,
		"book": {"title": "Flutter untuk Pemula", "author": "Siti", "availableStock": 2},
		"user": {"name": "Ahmad Nur", "email": "ahmad@mail.com"}
	}`

	loan, err := DecodeLoan([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, StatusReturned, loan.Status)
	assert.Equal(t, 7, loan.LoanDuration)
	assert.True(t, loan.RequestDate.Present(), "createdAt maps to request date")
	require.NotNil(t, loan.Book)
	assert.Equal(t, 2, loan.Book.Stock)

	p := loan.Projection()
	assert.Equal(t, "Flutter untuk Pemula", p.BookTitle)
	assert.Equal(t, "Ahmad Nur", p.BorrowerName)
	assert.Equal(t, DefaultAvatarPath, p.AvatarURL)
	// approved 2025-01-02 + 7 days = 2025-01-09, returned 2025-01-10.
	assert.Equal(t, "9 Januari 2025", p.DueDate)
	assert.Equal(t, VerdictLate, p.Verdict)
}

func TestDecodeLoanMissingEntities(t *testing.T) {
	loan, err := DecodeLoan([]byte(`{"id":"loan-2","status":"pending"}`))
	require.NoError(t, err)

	p := loan.Projection()
	assert.Equal(t, DefaultBookTitle, p.BookTitle)
	assert.Equal(t, DefaultBookAuthor, p.BookAuthor)
	assert.Equal(t, DefaultUserName, p.BorrowerName)
	assert.Equal(t, DefaultUserEmail, p.BorrowerEmail)
}
