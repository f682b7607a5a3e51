package sqsclient

// Secret holds a credential value and refuses to print it. String, GoString
// and the marshal methods all return a placeholder, so the raw value cannot
// leak through logging, %v formatting or JSON dumps of a config struct.
type Secret string

const redactedPlaceholder = "[REDACTED]"

func (s Secret) String() string { return redactedPlaceholder }

func (s Secret) GoString() string { return redactedPlaceholder }

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redactedPlaceholder), nil
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedPlaceholder + `"`), nil
}

// Expose returns the raw secret. The only intended caller is the code that
// hands the value to the AWS credentials provider.
func (s Secret) Expose() string { return string(s) }

// Credentials is an AWS access key pair. The two halves are always set
// together and the secret half is redacted everywhere it could be rendered.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey Secret
}
