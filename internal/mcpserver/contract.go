package mcpserver

// MarkupContract describes the article body format the site renders.
// Agents drafting articles should follow it exactly.
const MarkupContract = `# AI Ninjas Article Markup

Article bodies are plain text interpreted line by line. Every line is
trimmed before it is classified. Blank lines separate blocks and are
otherwise ignored.

## Line kinds

| Line starts with | Renders as | Notes |
|---|---|---|
| ` + "`# `" + ` | heading, level 1 | listed in the table of contents |
| ` + "`## `" + ` | heading, level 2 | listed in the table of contents |
| ` + "`### `" + ` | heading, level 3 | listed in the table of contents |
| ` + "`**`" + ` and ends with ` + "`**`" + ` | bold line | the whole line is bold |
| ` + "`- `" + ` | list item | consecutive items form one list |
| anything else | paragraph | one paragraph per line |

Headings get anchor ids ` + "`heading-0`" + `, ` + "`heading-1`" + `, ... in order of
appearance.

## Not supported

- Inline emphasis, links or images inside a paragraph are shown verbatim.
- Numbered lists, tables, code fences and HTML are shown verbatim.
- Four or more ` + "`#`" + ` characters produce a paragraph.

## Article fields

- ` + "`title`" + ` (required) and ` + "`content`" + ` (required).
- ` + "`category`" + ` (required): one of AI Fundamentals, Machine Learning,
  Deep Learning, Ethics, Industry News, Tutorials.
- ` + "`slug`" + ` (optional): lower-case words joined by single hyphens. Derived
  from the title when omitted. Must not clash with an existing article.
- ` + "`video`" + ` (optional): a YouTube link, a Vimeo link or a direct
  .mp4/.webm/.ogg/.mov/.avi file URL.
- ` + "`readTime`" + ` (optional): estimated from the content when omitted.

## Example

` + "```" + `text
# Gradient Descent, Gently

Every model learns by walking downhill.

## The Idea

**Small steps beat big leaps.**

- Pick a starting point
- Measure the slope
- Step against it
` + "```" + `
`
