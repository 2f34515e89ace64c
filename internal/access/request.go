package access

// Request is one credential presentation: a plaintext password or a
// biometric challenge. The password is only ever handed to the hasher.
type Request struct {
	biometry bool
	secret   string
}

func PasswordRequest(secret string) Request { return Request{secret: secret} }

func BiometryRequest() Request { return Request{biometry: true} }

func (r Request) IsBiometry() bool { return r.biometry }

// String never includes the secret.
func (r Request) String() string {
	if r.biometry {
		return "biometry"
	}
	return "password"
}

// GoString keeps %#v from printing the secret.
func (r Request) GoString() string { return "access.Request(" + r.String() + ")" }
