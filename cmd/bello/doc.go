// Command bello manages a personal bibliographic library: importing
// reference files, serving the browser-connector capture protocol, and
// browsing or exporting stored records.
package main
