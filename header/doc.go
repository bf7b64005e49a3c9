// Package header provides the header map shared by every message part. A
// Header is an ordered list of field.Field values, duplicates included, with
// case-insensitive lookup by name. High-level getters interpret the common
// structured headers (addresses, Content-Type, Content-Disposition, Date)
// whether they were stored already typed or as plain strings.
package header
