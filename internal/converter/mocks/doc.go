// Package mocks provides mock implementations for testing purposes.
package mocks

//go:generate mockgen -destination=mock_ports.go -package=mocks github.com/ginjaninja78/payroll-batch-converter/internal/converter PayrollSource,SchemaSource,ResultSink
