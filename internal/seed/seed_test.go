package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeedFile(t *testing.T) {
	data := []byte(`
companies:
  - title: Acme
    description: Widgets
    url: https://acme.test
  - title: Mango
`)
	sf, err := parse(data)
	require.NoError(t, err)
	require.Len(t, sf.Companies, 2)
	assert.Equal(t, "Acme", sf.Companies[0].Title)
	assert.Equal(t, "Widgets", sf.Companies[0].Description)
	assert.Equal(t, "https://acme.test", sf.Companies[0].URL)
	assert.Equal(t, "Mango", sf.Companies[1].Title)
	assert.Equal(t, "", sf.Companies[1].Description)
}

func TestParseRejectsEmptyFile(t *testing.T) {
	_, err := parse([]byte("companies: []"))
	assert.Error(t, err)

	_, err = parse([]byte("not: relevant"))
	assert.Error(t, err)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := parse([]byte("companies:\n  - title: [unclosed"))
	assert.Error(t, err)
}
