package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/todoboard/backend/internal/infrastructure/config"
)

// dialect 不同数据库的建表与批量删除语句
// 批量删除以单个 JSON 数组参数绑定 ID，不受驱动占位符数量上限影响
type dialect struct {
	name        string
	createTodos string
	deleteByIDs string
}

var (
	sqliteDialect = dialect{
		name: config.DriverSQLite,
		createTodos: `
	CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL CHECK (length(trim(title)) > 0),
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
		deleteByIDs: `DELETE FROM todos WHERE id IN (SELECT value FROM json_each(?))`,
	}

	mysqlDialect = dialect{
		name: config.DriverMySQL,
		createTodos: `
	CREATE TABLE IF NOT EXISTS todos (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	) DEFAULT CHARSET = utf8mb4`,
		deleteByIDs: `DELETE FROM todos WHERE id IN (
		SELECT id FROM JSON_TABLE(?, '$[*]' COLUMNS (id BIGINT PATH '$')) AS ids)`,
	}
)

// dialectFor 根据驱动名返回方言
func dialectFor(driver string) dialect {
	if driver == config.DriverMySQL {
		return mysqlDialect
	}
	return sqliteDialect
}

// dialectOf 根据已打开连接的驱动类型返回方言
func dialectOf(db *sql.DB) dialect {
	switch db.Driver().(type) {
	case *mysql.MySQLDriver, mysql.MySQLDriver:
		return mysqlDialect
	}
	return sqliteDialect
}

// migrate 初始化表结构
func migrate(ctx context.Context, db *sql.DB, d dialect) error {
	if _, err := db.ExecContext(ctx, d.createTodos); err != nil {
		return fmt.Errorf("failed to create todos table (%s): %w", d.name, err)
	}
	return nil
}
