// Package download fetches release archives over HTTP with resty and
// unpacks them in place.
package download
