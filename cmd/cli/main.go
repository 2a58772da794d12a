package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	rootCmd   = &cobra.Command{
		Use:   "mediagrab",
		Short: "Mediagrab CLI - Fetch ranked formats and download media via the server",
		Long:  `A command-line interface for the mediagrab server: list encoded stream options for a URL, start downloads and retrieve finished files.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")

	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(healthCmd)
}

var formatsCmd = &cobra.Command{
	Use:   "formats [url]",
	Short: "List ranked format candidates for a URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		payload, _ := json.Marshal(map[string]string{"url": args[0]})
		resp, err := http.Post(serverURL+"/get_formats", "application/json", bytes.NewBuffer(payload))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result struct {
			TaskID  string `json:"task_id"`
			Title   string `json:"title"`
			Formats []struct {
				FormatID     string `json:"format_id"`
				Label        string `json:"note"`
				QualityScore int    `json:"quality_score"`
				Type         string `json:"type_label"`
				AudioOnlyMP3 bool   `json:"audio_only_mp3"`
			} `json:"formats"`
		}
		json.Unmarshal(body, &result)

		fmt.Printf("Title: %s\n\n", result.Title)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FORMAT\tSCORE\tMP3\tDESCRIPTION")
		for _, f := range result.Formats {
			mp3 := ""
			if f.AudioOnlyMP3 {
				mp3 = "yes"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", f.FormatID, f.QualityScore, mp3, f.Label)
		}
		w.Flush()
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Start a download and report the task id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		formatID, _ := cmd.Flags().GetString("format")
		mp3, _ := cmd.Flags().GetBool("mp3")
		formatType, _ := cmd.Flags().GetString("type")
		wait, _ := cmd.Flags().GetBool("wait")

		payload, _ := json.Marshal(map[string]interface{}{
			"url":            args[0],
			"format_id":      formatID,
			"audio_only_mp3": mp3,
			"format_type":    formatType,
		})
		resp, err := http.Post(serverURL+"/download", "application/json", bytes.NewBuffer(payload))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result map[string]string
		json.Unmarshal(body, &result)
		taskID := result["task_id"]
		fmt.Printf("Download started\nTask: %s\n", taskID)

		if wait {
			waitForTask(taskID)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [task-id]",
	Short: "Show the current state of a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		task, err := getTask(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printTask(task)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [task-id]",
	Short: "Download the finished file for a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		resp, err := http.Get(serverURL + "/file/" + args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		if output == "" {
			task, err := getTask(args[0])
			if err == nil && task["filename"] != nil {
				output = task["filename"].(string)
			} else {
				output = args[0]
			}
		}

		file, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()

		n, err := io.Copy(file, resp.Body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved %s (%d bytes)\n", output, n)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(serverURL + "/health")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		fmt.Println(string(body))
	},
}

func init() {
	downloadCmd.Flags().StringP("format", "f", "", "Format id from the formats listing")
	downloadCmd.Flags().Bool("mp3", false, "Convert the selected audio stream to MP3")
	downloadCmd.Flags().StringP("type", "t", "", "Format type (Video+Audio, Video only, Audio only)")
	downloadCmd.Flags().BoolP("wait", "w", false, "Poll until the task finishes")
	fetchCmd.Flags().StringP("output", "o", "", "Output file name")
}

func getTask(id string) (map[string]interface{}, error) {
	resp, err := http.Get(serverURL + "/progress/" + id)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s", string(body))
	}

	var task map[string]interface{}
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, err
	}
	return task, nil
}

func printTask(task map[string]interface{}) {
	fmt.Printf("Task Details:\n")
	fmt.Printf("  ID:       %v\n", task["id"])
	fmt.Printf("  Status:   %v\n", task["status"])
	fmt.Printf("  Progress: %v%%\n", task["progress"])
	if task["message"] != nil {
		fmt.Printf("  Message:  %v\n", task["message"])
	}
	if task["filename"] != nil {
		fmt.Printf("  File:     %v\n", task["filename"])
	}
}

func waitForTask(id string) {
	for {
		time.Sleep(time.Second)
		task, err := getTask(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		status, _ := task["status"].(string)
		progress, _ := task["progress"].(float64)
		fmt.Printf("\r%s %.1f%%   ", status, progress)

		if status == "finished" || status == "error" {
			fmt.Println()
			printTask(task)
			return
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
