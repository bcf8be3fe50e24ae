package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"comicnotifier/pkg/models"
)

func main() {
	addr := "127.0.0.1:9090"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	fmt.Println("Connected to chapter stream:", addr)
	fmt.Println("Waiting for chapter updates...")

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		var u models.ChapterUpdate
		if err := json.Unmarshal(sc.Bytes(), &u); err != nil {
			fmt.Println("bad line:", sc.Text())
			continue
		}
		fmt.Printf("%s user=%d %s: %s -> %s\n",
			time.Unix(u.Timestamp, 0).Format(time.TimeOnly), u.UserID, u.Title, u.PreviousChapter, u.Chapter)
	}
	fmt.Println("Disconnected.")
}
