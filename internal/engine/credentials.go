package engine

import "context"

// CredentialProvider supplies the credential attached to every request of a
// delivery cycle. Returning an error or an empty credential aborts the cycle
// before any record is touched.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// CredentialFunc adapts a plain function to a CredentialProvider.
type CredentialFunc func(ctx context.Context) (string, error)

// Token calls fn.
func (fn CredentialFunc) Token(ctx context.Context) (string, error) {
	return fn(ctx)
}

// StaticCredential returns a provider that always yields the given token.
func StaticCredential(token string) CredentialFunc {
	return func(context.Context) (string, error) {
		return token, nil
	}
}
