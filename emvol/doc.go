/*
	Package emvol provides types, constants and functions that have no other
	dependencies and can be used by all packages within emvol.
*/
package emvol
