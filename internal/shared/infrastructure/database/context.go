package database

import "context"

type txKey struct{}

type txInfo struct {
	tx    Transaction
	owned bool
}

func withTx(ctx context.Context, tx Transaction, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, txInfo{tx: tx, owned: owned})
}

func txInfoFrom(ctx context.Context) (txInfo, bool) {
	info, ok := ctx.Value(txKey{}).(txInfo)
	return info, ok && info.tx != nil
}

// TxFromContext returns the transaction started by a UnitOfWork, or nil.
func TxFromContext(ctx context.Context) Transaction {
	info, _ := txInfoFrom(ctx)
	return info.tx
}

// ExecutorFromContext returns the active transaction when there is one and
// the connection otherwise.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return conn
}
