package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/fairlab"
	"github.com/zintix-labs/fairlab/dto"
	"github.com/zintix-labs/fairlab/gameconfigs"
	"github.com/zintix-labs/fairlab/gamespec"
	"github.com/zintix-labs/fairlab/sdk/buf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name       string
	id         gamespec.GID
	bet        float64
	serverSeed string
	clientSeed string
	nonce      uint64
	spins      int
	scatBoost  bool
	wildBoost  bool
	asJSON     bool
	pprofmode  string
}

type gidFlag struct{ p *gamespec.GID }

func (f gidFlag) String() string { return fmt.Sprint(int(*f.p)) }
func (f gidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = gamespec.GID(u)
	return nil
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.Var(gidFlag{&cfg.id}, "game", "target game id")
	flag.Float64Var(&cfg.bet, "bet", 1.0, "bet amount")
	flag.StringVar(&cfg.serverSeed, "server", "", "server seed (random when empty)")
	flag.StringVar(&cfg.clientSeed, "client", "player", "client seed")
	flag.Uint64Var(&cfg.nonce, "nonce", 0, "starting nonce")
	flag.IntVar(&cfg.spins, "spins", 1, "number of consecutive nonces to play")
	flag.BoolVar(&cfg.scatBoost, "scatterboost", false, "play with the scatter-boost weight table")
	flag.BoolVar(&cfg.wildBoost, "wildboost", false, "play with the wild-boost weight table")
	flag.BoolVar(&cfg.asJSON, "json", false, "print each result as JSON instead of a table")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// 沒帶 server seed 就臨時產一把（本工具只是試玩，不做事前承諾流程）
	if cfg.serverSeed == "" {
		var b [32]byte
		if _, err := rand.Read(b[:]); err != nil {
			log.Fatal(err)
		}
		cfg.serverSeed = hex.EncodeToString(b[:])
	}
}

// 這裡組裝 runtime 並試玩指定局數
func executePlayer() {
	cfg.valid() // 基本檢查

	lab, err := fairlab.NewAuto(fairlab.Configs(gameconfigs.FS))
	if err != nil {
		log.Fatal(err)
	}
	eng, err := lab.NewEngine(cfg.id)
	if err != nil {
		log.Fatal(err)
	}
	ent, _ := lab.EntryById(cfg.id)
	cfg.name = ent.Name

	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	p.Printf("%s[GAME:%s] [BET:%v] [CLIENT:%s] [NONCE:%d..%d]%s\n", green, cfg.name, cfg.bet, cfg.clientSeed, cfg.nonce, cfg.nonce+uint64(cfg.spins)-1, reset)

	remaining := 0
	for i := 0; i < cfg.spins; i++ {
		req := &buf.SpinRequest{
			GameName:     cfg.name,
			Bet:          cfg.bet,
			ServerSeed:   cfg.serverSeed,
			ClientSeed:   cfg.clientSeed,
			Nonce:        cfg.nonce + uint64(i),
			ScatterBoost: cfg.scatBoost,
			WildBoost:    cfg.wildBoost,
		}
		if remaining > 0 {
			req.FreeSpin = true
			req.FreeSpinsRemaining = remaining
		}

		res, err := eng.Spin(req)
		if err != nil {
			log.Fatal(err)
		}
		remaining = res.FreeSpinsRemaining

		if cfg.asJSON {
			enc := json.NewEncoder(os.Stdout)
			if err := enc.Encode(res); err != nil {
				log.Fatal(err)
			}
			continue
		}
		printRound(p, &res)
	}
}

func printRound(p *message.Printer, res *dto.SpinResult) {
	mode := "base"
	if res.IsFreeSpin {
		mode = "free"
	}
	p.Printf("\nnonce %d (%s): payout %.4f (%.4fx) tumbles %d max mult %d\n",
		res.SeedInfo.Nonce, mode, res.TotalPay, res.PayoutMult, res.TumbleCount, res.MaxMultiplier)
	if res.FreeSpinsTriggered > 0 {
		p.Printf("free spins awarded: %d (remaining %d)\n", res.FreeSpinsTriggered, res.FreeSpinsRemaining)
	}
	if res.JackpotWon != "" {
		p.Printf("jackpot %s: %.2f\n", res.JackpotWon, res.JackpotAmount)
	}
	fmt.Print(drawGrid(res.FinalGrid, res.FinalMultipliers))
}

// drawGrid 把終盤符號與倍數層排成對齊的表格。
// 倍數大於 1 的格子以 "sym*n" 標示。
func drawGrid(grid [][]string, mults [][]int) string {
	cells := make([][]string, len(grid))
	width := 0
	for r := range grid {
		cells[r] = make([]string, len(grid[r]))
		for c := range grid[r] {
			s := grid[r][c]
			if r < len(mults) && c < len(mults[r]) && mults[r][c] > 1 {
				s = fmt.Sprintf("%s*%d", s, mults[r][c])
			}
			cells[r][c] = s
			if w := runewidth.StringWidth(s); w > width {
				width = w
			}
		}
	}

	var b strings.Builder
	for _, row := range cells {
		b.WriteString("|")
		for _, s := range row {
			b.WriteString(" ")
			b.WriteString(s)
			b.WriteString(strings.Repeat(" ", width-runewidth.StringWidth(s)+1))
			b.WriteString("|")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (cfg *config) valid() {
	if cfg.bet <= 0 {
		log.Fatal("value err : bet must > 0")
	}
	if cfg.spins < 1 {
		log.Fatal("value err : spins must > 0")
	}
	if cfg.clientSeed == "" {
		log.Fatal("value err : client seed required")
	}
}
