/*
Package version holds the current release version.
*/
package version

// Version is the current version of nvdimport.
const Version = "0.1.0"
