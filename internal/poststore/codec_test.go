package poststore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPost() *Post {
	ts := time.Date(2024, 3, 1, 12, 30, 15, 123456789, time.UTC)
	return &Post{
		Slug:        "hello-world",
		Title:       "Hello World",
		Description: "first post",
		Date:        "2024-03-01",
		Content:     "# Hello\n\nSome *markdown* body.\n",
		IsPublic:    true,
		CreatedAt:   ts,
		UpdatedAt:   ts.Add(time.Hour),
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codecs := map[string]Codec{
		"frontmatter": FrontmatterCodec{},
		"json":        JSONCodec{},
	}

	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			for _, isPublic := range []bool{true, false} {
				p := testPost()
				p.IsPublic = isPublic

				data, err := codec.Marshal(p)
				require.NoError(t, err)

				got, err := codec.Unmarshal(p.Slug, data)
				require.NoError(t, err)
				assert.Equal(t, p, got)
			}
		})
	}
}

func TestCodecRoundTripEmptyContent(t *testing.T) {
	p := testPost()
	p.Content = ""

	data, err := FrontmatterCodec{}.Marshal(p)
	require.NoError(t, err)

	got, err := FrontmatterCodec{}.Unmarshal(p.Slug, data)
	require.NoError(t, err)
	assert.Equal(t, "", got.Content)
}

func TestFrontmatterCodec_Unmarshal(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Post
	}{
		{
			name:  "legacy file without timestamps",
			input: "---\ntitle: Old Post\ndescription: from before\ndate: 2023-05-04\n---\n\nBody text\n",
			want: Post{
				Slug: "old", Title: "Old Post", Description: "from before", Date: "2023-05-04",
				Content: "\nBody text\n", IsPublic: true,
			},
		},
		{
			name:  "explicit private",
			input: "---\ntitle: Draft\ndate: 2023-05-04\nisPublic: false\n---\nwip",
			want:  Post{Slug: "old", Title: "Draft", Date: "2023-05-04", Content: "wip", IsPublic: false},
		},
		{
			name:  "null isPublic is public",
			input: "---\ntitle: Draft\nisPublic: null\n---\nwip",
			want:  Post{Slug: "old", Title: "Draft", Content: "wip", IsPublic: true},
		},
		{
			name:  "missing title",
			input: "---\ndate: 2023-05-04\n---\nbody",
			want:  Post{Slug: "old", Title: "Untitled", Date: "2023-05-04", Content: "body", IsPublic: true},
		},
		{
			name:  "no frontmatter",
			input: "just a body\n",
			want:  Post{Slug: "old", Title: "Untitled", Content: "just a body\n", IsPublic: true},
		},
		{
			name:  "crlf line endings",
			input: "---\r\ntitle: Windows\r\n---\r\nbody\r\n",
			want:  Post{Slug: "old", Title: "Windows", Content: "body\r\n", IsPublic: true},
		},
		{
			name:  "timestamp date is reduced to a calendar date",
			input: "---\ntitle: T\ndate: 2023-05-04T10:00:00.000Z\n---\n",
			want:  Post{Slug: "old", Title: "T", Date: "2023-05-04", IsPublic: true},
		},
		{
			name:  "unterminated block is body",
			input: "---\ntitle: T\n",
			want:  Post{Slug: "old", Title: "Untitled", Content: "---\ntitle: T\n", IsPublic: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FrontmatterCodec{}.Unmarshal("old", []byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, &tc.want, got)
		})
	}
}

func TestFrontmatterCodec_UnmarshalMalformed(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "invalid yaml", input: "---\ntitle: [unclosed\n---\nbody"},
		{name: "invalid createdAt", input: "---\ntitle: T\ncreatedAt: yesterday\n---\nbody"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FrontmatterCodec{}.Unmarshal("bad", []byte(tc.input))
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestJSONCodec_Unmarshal(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    *Post
		wantErr error
	}{
		{
			name:  "slug comes from the key",
			input: `{"slug":"other","title":"T","content":"c","date":"2024-01-01","isPublic":false}`,
			want:  &Post{Slug: "key", Title: "T", Content: "c", Date: "2024-01-01", IsPublic: false},
		},
		{
			name:  "defaults",
			input: `{}`,
			want:  &Post{Slug: "key", Title: "Untitled", IsPublic: true},
		},
		{
			name:  "null isPublic",
			input: `{"title":"T","isPublic":null}`,
			want:  &Post{Slug: "key", Title: "T", IsPublic: true},
		},
		{
			name:    "not json",
			input:   `---`,
			wantErr: ErrMalformedRecord,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := JSONCodec{}.Unmarshal("key", []byte(tc.input))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJSONCodec_MarshalFieldNames(t *testing.T) {
	data, err := JSONCodec{}.Marshal(testPost())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"slug": "hello-world",
		"title": "Hello World",
		"description": "first post",
		"date": "2024-03-01",
		"content": "# Hello\n\nSome *markdown* body.\n",
		"isPublic": true,
		"createdAt": "2024-03-01T12:30:15.123456789Z",
		"updatedAt": "2024-03-01T13:30:15.123456789Z"
	}`, string(data))
}

func TestParseDate(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ParseDate("2024-01-02"))
	assert.Equal(t, epoch, ParseDate(""))
	assert.Equal(t, epoch, ParseDate("not a date"))
}
