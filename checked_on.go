//go:build gss_checked

package gss

const defaultCheckGenerations = true
