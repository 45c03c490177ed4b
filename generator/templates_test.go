package generator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDeterministic(t *testing.T) {
	r := NewRenderer()
	data := map[string]any{
		"Table":        "clients",
		"ModelName":    "Client",
		"TypeName":     "ClientType",
		"ReactiveName": "ReactiveClient",
		"KebabName":    "client",
	}

	first, err := r.Render("reactive", data)
	require.NoError(t, err)
	second, err := r.Render("reactive", data)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same template and context must render identical bytes")
	assert.Contains(t, first, "export class ReactiveClient extends ReactiveRecord<ClientType>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := NewRenderer()
	_, err := r.Render("nope", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template")
}

func TestRenderMissingKey(t *testing.T) {
	r := NewRendererWithTemplates(map[string]string{
		"broken": "{{.DoesNotExist}}",
	})
	_, err := r.Render("broken", map[string]any{"Table": "clients"})
	require.Error(t, err)
}

func TestRenderConcurrent(t *testing.T) {
	r := NewRenderer()
	data := map[string]any{
		"Table":        "jobs",
		"ModelName":    "Job",
		"TypeName":     "JobType",
		"ReactiveName": "ReactiveJob",
		"KebabName":    "job",
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Render("reactive", data)
			assert.NoError(t, err)
			assert.NotEmpty(t, out)
		}()
	}
	wg.Wait()
}

func TestTemplateFuncs(t *testing.T) {
	r := NewRendererWithTemplates(map[string]string{
		"union": `{{union .Names}}`,
		"list":  `{{list .Names}}`,
	})

	out, err := r.Render("union", map[string]any{"Names": []string{"id", "jobs"}})
	require.NoError(t, err)
	assert.Equal(t, "'id' | 'jobs'", out)

	out, err = r.Render("list", map[string]any{"Names": []string{"Client", "Job"}})
	require.NoError(t, err)
	assert.Equal(t, "'Client', 'Job'", out)
}
