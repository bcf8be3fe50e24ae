package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"

	"comicnotifier/internal/udpnotify"
)

func main() {
	server := "127.0.0.1:7070"
	if len(os.Args) > 1 {
		server = os.Args[1]
	}

	serverAddr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		panic(err)
	}

	// one socket both subscribes and receives
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	if _, err := conn.WriteToUDP([]byte("SUBSCRIBE"), serverAddr); err != nil {
		panic(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		_, _ = conn.WriteToUDP([]byte("UNSUBSCRIBE"), serverAddr)
		_ = conn.Close()
	}()

	fmt.Println("UDP monitor subscribed to:", server)
	fmt.Println("Local addr:", conn.LocalAddr().String())
	fmt.Println("Waiting for chapter updates...")

	buf := make([]byte, 4096)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			fmt.Println("stopped:", err)
			return
		}
		var noti udpnotify.Notification
		if err := json.Unmarshal(buf[:n], &noti); err != nil {
			fmt.Println("bad datagram:", string(buf[:n]))
			continue
		}
		u := noti.Update
		fmt.Printf("[%s] %s: %s -> %s (%s)\n", noti.Type, u.Title, u.PreviousChapter, u.Chapter, u.URL)
	}
}
