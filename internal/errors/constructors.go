package errors

// Configuration errors. All of them are fatal and raised before any
// destination mutation.

func ConfigNotFound(path string) *Error {
	return New(CategoryConfig, SeverityFatal, "configuration file does not exist or is not readable").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *Error {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file is malformed").
		WithContext("path", path)
}

func ConfigRequired(field string) *Error {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func TemplateUnreadable(path string, cause error) *Error {
	return Wrap(cause, CategoryConfig, SeverityFatal, "template file does not exist or is not readable").
		WithContext("path", path)
}

func DestinationNotWritable(path string, cause error) *Error {
	return Wrap(cause, CategoryConfig, SeverityFatal, "parent directory of the deploy path does not exist or is not writable").
		WithContext("path", path)
}

func InvalidThreads(n int, lo, hi int) *Error {
	return New(CategoryValidation, SeverityFatal, "thread count out of range").
		WithContext("threads", n).
		WithContext("min", lo).
		WithContext("max", hi)
}

func ValidationFailed(field, reason string) *Error {
	return New(CategoryValidation, SeverityFatal, "invalid "+field+": "+reason).
		WithContext("field", field).
		WithContext("reason", reason)
}

func EmptyIndex(dir string) *Error {
	return New(CategoryConfig, SeverityFatal, "no source file is found").
		WithContext("source_dir", dir)
}

// Build pipeline errors

func StageFailed(stage string, cause error) *Error {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build stage failed").
		WithContext("stage", stage)
}

func RenderFailed(name string, cause error) *Error {
	return Wrap(cause, CategoryRender, SeverityError, "render failed").
		WithContext("name", name)
}

func PublishFailed(path string, cause error) *Error {
	return Wrap(cause, CategoryFileSystem, SeverityError, "publish failed").
		WithContext("path", path)
}

func BackupFailed(path string, cause error) *Error {
	return Wrap(cause, CategoryFileSystem, SeverityError, "backup failed").
		WithContext("path", path)
}

// Side channels

func ExternalFailed(system string, cause error) *Error {
	return Wrap(cause, CategoryExternal, SeverityWarning, "external system call failed").
		WithContext("system", system)
}

func InternalError(message string, cause error) *Error {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
