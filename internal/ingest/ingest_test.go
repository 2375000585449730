package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingPage = `<!DOCTYPE html>
<html>
<head>
	<title>Backend Engineer | Acme Careers</title>
	<meta property="og:title" content="Backend Engineer">
	<meta property="og:site_name" content="Acme">
</head>
<body>
	<nav>Home / Careers</nav>
	<div class="job-description">
		<h2>About the role</h2>
		<p>We build payment infrastructure in Golang and Python.</p>
		<ul>
			<li>Experience with PostgreSQL and Redis</li>
			<li>Docker and Kubernetes in production</li>
		</ul>
	</div>
	<form id="application-form">First name</form>
</body>
</html>`

func TestFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(postingPage))
	}))
	defer server.Close()

	posting, err := New(nil).FromURL(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, server.URL, posting.URL)
	assert.Equal(t, "unknown", posting.Platform)
	assert.Equal(t, "Backend Engineer", posting.Title)
	assert.Equal(t, "Acme", posting.Company)
	assert.Contains(t, posting.Text, "payment infrastructure")
	assert.NotContains(t, posting.Text, "First name")

	assert.Contains(t, posting.Skills, "go")
	assert.Contains(t, posting.Skills, "python")
	assert.Contains(t, posting.Skills, "postgresql")
	assert.Contains(t, posting.Skills, "kubernetes")
	assert.False(t, posting.Rendered)
	assert.NotEmpty(t, posting.Hash)
}

func TestFromURL_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(nil).FromURL(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFromURLs_ToleratesFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(postingPage))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	postings, errs := New(nil).FromURLs(context.Background(), []string{good.URL, bad.URL, good.URL})

	require.Len(t, postings, 3)
	require.Len(t, errs, 3)

	assert.NotNil(t, postings[0])
	assert.NoError(t, errs[0])

	assert.Nil(t, postings[1])
	assert.ErrorIs(t, errs[1], ErrFetchFailed)

	assert.NotNil(t, postings[2])
	assert.NoError(t, errs[2])
}

func TestFromText(t *testing.T) {
	posting := New(nil).FromText("Looking for Golang and Terraform experience.")
	assert.Contains(t, posting.Skills, "go")
	assert.Contains(t, posting.Skills, "terraform")
	assert.Empty(t, posting.URL)
}

func TestPageIdentity_TitleFallback(t *testing.T) {
	title, company := pageIdentity(`<html><head><title>Data Engineer</title></head><body></body></html>`)
	assert.Equal(t, "Data Engineer", title)
	assert.Empty(t, company)
}
