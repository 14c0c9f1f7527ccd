//go:build !unix

package console

func notifyResize(func()) (stop func()) { return func() {} }
