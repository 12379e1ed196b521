// Package hook provides named extension points for the render pipeline.
//
// A hook is a named point in the pipeline where registered handlers are
// invoked in registration order. Each handler receives the content produced
// by the previous one and returns the (possibly transformed) content.
//
// Example usage:
//
//	reg := hook.NewRegistry()
//	_ = reg.RegisterHook(hook.PreRenderContent, hook.Func(strings.ToUpper))
//
//	out, err := reg.Run(hook.PreRenderContent, "my post body")
package hook
