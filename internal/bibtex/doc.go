// Package bibtex implements a whole-file BibTeX tokenizer and the matching
// exporter. The tokenizer is deliberately forgiving: it handles brace- and
// paren-delimited entries, nested braces inside values, quoted values with
// backslash escapes, and bare values, and it returns the entries parsed so
// far when the input ends mid-entry. It does no filesystem work; attachment
// references from the Zotero file field are surfaced as FileSpec values for
// the importer to resolve.
package bibtex
