package repository

import "github.com/bsolutions/shes/internal/db"

// TxRepos builds repositories bound to one connection or transaction.
// Services hand the DBTX from a UnitOfWork callback to these functions.
type TxRepos struct {
	Projects func(conn db.DBTX) ProjectRepo
	Items    func(conn db.DBTX) ProjectItemRepo
}

// SQLTxRepos returns the SQL repositories for the given dialect.
func SQLTxRepos(dialect db.Dialect) TxRepos {
	return TxRepos{
		Projects: func(conn db.DBTX) ProjectRepo { return NewSQLProjectRepo(conn, dialect) },
		Items:    func(conn db.DBTX) ProjectItemRepo { return NewSQLProjectItemRepo(conn, dialect) },
	}
}
