package storage

// Option configures a Put.
type Option func(*putOptions)

type putOptions struct {
	key         string
	prefix      string
	contentType string
	acl         ACL
	rules       []Rule
}

// WithKey stores the file under key instead of a generated one.
func WithKey(key string) Option {
	return func(o *putOptions) { o.key = key }
}

// WithPrefix puts generated keys under prefix, e.g. "images/{uuid}.png".
func WithPrefix(prefix string) Option {
	return func(o *putOptions) { o.prefix = prefix }
}

// WithContentType skips sniffing and uses ct.
func WithContentType(ct string) Option {
	return func(o *putOptions) { o.contentType = ct }
}

// WithACL overrides the configured default ACL.
func WithACL(acl ACL) Option {
	return func(o *putOptions) { o.acl = acl }
}

// WithValidation runs rules against the size and sniffed content type
// before anything is uploaded. A failing rule aborts with *ValidationError.
func WithValidation(rules ...Rule) Option {
	return func(o *putOptions) { o.rules = append(o.rules, rules...) }
}

func applyOptions(acl ACL, opts []Option) *putOptions {
	o := &putOptions{acl: acl}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
