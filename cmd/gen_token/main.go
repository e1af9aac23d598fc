package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"MarketServer/config"
	"MarketServer/pkg/util"
)

// 本地调试用：为指定用户签发访问令牌
func main() {
	userID := flag.Int64("user", 0, "用户id")
	configPath := flag.String("config", "", "配置文件路径，为空使用默认配置与环境变量")
	flag.Parse()

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "用法: gen_token -user <id> [-config path]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	token, err := util.GenerateToken(cfg.Auth, *userID, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发令牌失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("用户id: %d\n", *userID)
	fmt.Printf("有效期: %s\n", cfg.Auth.TokenTTL)
	fmt.Printf("Authorization: Bearer %s\n", token)
}
