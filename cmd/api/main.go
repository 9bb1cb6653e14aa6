package main

import (
	"context"
	"log"

	"instasphere/internal/config"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"
	"instasphere/internal/repository/redis"
	"instasphere/internal/router"
	"instasphere/internal/service"
	"instasphere/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		log.Fatal(err)
	}

	// 连接redis
	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Fatal(err)
	}
	defer redis.Close()

	pkg.InitJWT([]byte(cfg.JWTAccessSecret), []byte(cfg.JWTRefreshSecret))

	// 自动建表（开发阶段 OK）。posts/notifications 建表与否决定降级行为
	mysql.DB.AutoMigrate(
		&model.User{},
		&model.Channel{},
		&model.Message{},
		&model.DirectMessage{},
		&model.Post{},
		&model.PostComment{},
		&model.PostLike{},
		&model.Notification{},
		&model.NotificationOutbox{},
		&model.UserPresence{},
		&model.UserVerification{},
	)

	store := storage.NewFSStore(cfg.StorageRoot, cfg.StorageBaseURL)

	// kafka 可选：没配 broker 时外发表只堆积不投递
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer producer.Close()

		relayer := service.NewOutboxRelayer(producer)
		go relayer.Run(context.Background())
	}

	// Gin
	r := router.InitRouter(cfg, store)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
