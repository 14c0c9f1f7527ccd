package mcpserver

// PostFormat describes how a post file is laid out in the content
// directory, for assistants helping to draft new posts.
const PostFormat = `# termblog post format

Posts are Markdown files under ` + "`posts/YYYY/MM/DD-slug.md`" + `.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED
date: 2024-01-02                    # OPTIONAL - defaults to the date in the path
tags:                               # OPTIONAL - YAML list
  - go
  - terminals
excerpt: One sentence shown in listings
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Both frontmatter fences are mandatory.** A file without them fails the build and is named in the error.
2. **The slug** is the file name without the ` + "`DD-`" + ` prefix and the ` + "`.md`" + ` extension. Slugs are unique across all posts.
3. **Dates** use ` + "`YYYY-MM-DD`" + ` and must be real calendar dates.
4. **Images** for a post live in ` + "`posts/YYYY/MM/<slug>/`" + ` and are referenced by file name: ` + "`![alt](diagram.png)`" + `.
5. **Tabs** in the body are shown as four spaces.
6. **Other files** can appear in listings through a sidecar ` + "`.NAME.meta.yaml`" + ` next to them, holding the same frontmatter keys.
`
