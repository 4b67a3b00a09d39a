package readability_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/drugwatch"
	"github.com/fwojciec/drugwatch/mock"
	"github.com/fwojciec/drugwatch/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>EMA recommends approval of Drug X</title></head>
<body>
<nav><a href="/">Home</a><a href="/news">News</a><a href="/medicines">Medicines</a></nav>
<div id="main">
<article>
<h1>EMA recommends approval of Drug X</h1>
<p>The European Medicines Agency has recommended granting a marketing authorisation in the European Union for Drug X for the treatment of adults with indication Y.</p>
<p>Drug X is developed by Example Pharma. The opinion adopted by the committee is an intermediary step on the path to patient access.</p>
<p>The recommendation is based on data from a randomised clinical trial in which patients treated with Drug X showed improvement compared with placebo.</p>
</article>
</div>
<footer>European Medicines Agency, Amsterdam</footer>
</body>
</html>`

func TestParser_ParseText(t *testing.T) {
	t.Parallel()

	t.Run("extracts article text on one line", func(t *testing.T) {
		t.Parallel()

		text, err := readability.NewParser(nil).ParseText([]byte(articleHTML), "text/html")

		require.NoError(t, err)
		assert.Contains(t, text, "marketing authorisation in the European Union")
		assert.NotContains(t, text, "\n")
	})

	t.Run("rejects empty input without fallback", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewParser(nil).ParseText(nil, "text/html")

		require.Error(t, err)
		assert.Equal(t, drugwatch.EINVALID, drugwatch.ErrorCode(err))
	})

	t.Run("uses fallback for empty input", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.TextParser{
			ParseTextFn: func(body []byte, contentType string) (string, error) {
				return "fallback text", nil
			},
		}

		text, err := readability.NewParser(fallback).ParseText(nil, "text/html")

		require.NoError(t, err)
		assert.Equal(t, "fallback text", text)
	})

	t.Run("propagates fallback error", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.TextParser{
			ParseTextFn: func(body []byte, contentType string) (string, error) {
				return "", errors.New("parse failed")
			},
		}

		_, err := readability.NewParser(fallback).ParseText(nil, "text/html")

		require.EqualError(t, err, "parse failed")
	})
}
