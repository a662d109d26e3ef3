package mcpserver

// IdeaFormatContract describes the Markdown format used for idea import,
// export and the read_idea tool.
const IdeaFormatContract = `# Jotter Idea Format

An idea is a short piece of free text with an optional title, tags and
folder. As a file it is Markdown with optional YAML frontmatter.

## Structure

` + "```" + `markdown
---
title: Human-readable title   # OPTIONAL, at most 200 characters
tags:                         # OPTIONAL, YAML list, no leading '#'
  - garage
  - diy
folder: Side Projects         # OPTIONAL, folder name; created on import
created: 2026-01-15           # OPTIONAL, ISO-8601 date or datetime
---

The idea itself, in Markdown. #inline-tags are picked up too.
` + "```" + `

## Rules

1. **The body is required** and becomes the idea description (at most
   20000 characters).
2. Without a ` + "`" + `title` + "`" + ` field, a first line of the form ` + "`" + `# Heading` + "`" + ` is used
   as the title and removed from the body.
3. **Tags** are single words: no spaces, no leading ` + "`" + `#` + "`" + ` in the list.
   Duplicates are dropped. Inline ` + "`" + `#tags` + "`" + ` in the body are merged in.
4. Ideas without a folder are shown under "Uncategorized". Using that name
   as the folder is the same as leaving it out.
5. **Encoding** is UTF-8.

## Example

` + "```" + `markdown
---
title: Standup bot
tags:
  - work
folder: Work
---

Post the daily summary to the team channel at 9:30. #automation
` + "```" + `
`
