package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/enunezf/dbsanitize/internal/core/ports"
)

// ask prints question and returns the trimmed answer. EOF yields "".
func ask(in io.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprintf(out, "%s: ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// lazyTables connects on first use so that rule files are resolved before
// the database is touched.
type lazyTables struct {
	open func(ctx context.Context) (ports.DatabasePort, error)
	db   ports.DatabasePort
}

func (l *lazyTables) ListTables(ctx context.Context) ([]string, error) {
	if l.db == nil {
		db, err := l.open(ctx)
		if err != nil {
			return nil, err
		}
		l.db = db
	}
	return l.db.ListTables(ctx)
}

func (l *lazyTables) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
