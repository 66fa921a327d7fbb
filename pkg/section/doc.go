/*
Package section holds the format-independent section model shared by every
document adapter: paths, values and the lookup errors.
*/
package section
