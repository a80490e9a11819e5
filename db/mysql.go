package db

import (
	"fmt"
	"time"

	"contract-kit/config"
	"contract-kit/log"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Mysql *gorm.DB

// DSN of the configured database.
func DSN(conf config.MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.UserName, conf.Password, conf.Address, conf.Port, conf.DbName)
}

// InitMysql 初始化Mysql连接池
func InitMysql(conf config.MysqlConfig) (*gorm.DB, error) {
	log.Logger.Info("Init Mysql")
	db, err := gorm.Open(mysql.Open(DSN(conf)), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Logger.Error("mysql connection error", zap.Error(err))
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(conf.MaxLifeTime) * time.Second)
	Mysql = db
	return db, nil
}
